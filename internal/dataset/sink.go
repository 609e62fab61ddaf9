package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/YY-OhioU/Passport-Generator/internal/compose"
)

// Sink destino de los registros de una corrida
type Sink interface {
	Write(ctx context.Context, r Record) error
	Close() error
}

// JSONLSink escribe un registro por línea en un archivo de solo agregado
type JSONLSink struct {
	mu   sync.Mutex
	path string
	file *os.File
	enc  *json.Encoder
}

// NewJSONLSink abre (o crea) path en modo agregado
func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open ground truth file: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	return &JSONLSink{path: path, file: f, enc: enc}, nil
}

func (s *JSONLSink) Path() string { return s.path }

// Write codifica r en una línea
func (s *JSONLSink) Write(_ context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New("ground truth file is closed")
	}
	if err := s.enc.Encode(r); err != nil {
		return fmt.Errorf("write ground truth line: %w", err)
	}
	return nil
}

// Close cierra el archivo; llamadas repetidas no fallan
func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

// RedisStreamSink publica cada registro en un stream de Redis (XADD)
type RedisStreamSink struct {
	client *redis.Client
	stream string
}

// NewRedisStreamSink conecta con Redis y verifica la conexión
func NewRedisStreamSink(ctx context.Context, url, password, stream string) (*RedisStreamSink, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisStreamSink{client: client, stream: stream}, nil
}

// Write agrega el registro al stream
func (s *RedisStreamSink) Write(ctx context.Context, r Record) error {
	values, err := streamValues(r)
	if err != nil {
		return err
	}
	if err := s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("xadd %s: %w", s.stream, err)
	}
	return nil
}

func (s *RedisStreamSink) Close() error {
	return s.client.Close()
}

func streamValues(r Record) (map[string]interface{}, error) {
	data, err := compose.MarshalUnescaped(r)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return map[string]interface{}{
		"file_name": r.FileName,
		"record":    string(data),
	}, nil
}

// MultiSink reparte cada registro entre varios destinos en orden
type MultiSink []Sink

func (m MultiSink) Write(ctx context.Context, r Record) error {
	for _, s := range m {
		if err := s.Write(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Close cierra todos los destinos aunque alguno falle
func (m MultiSink) Close() error {
	var errs []error
	for _, s := range m {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
