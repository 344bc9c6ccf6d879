package events

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/chrisdamba/whattoeat/internal/models"
	"github.com/rs/zerolog/log"
)

type Destination interface {
	WriteMessage(topic string, msg []byte) error
	Close() error
}

type ConsoleOutput struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleOutput(w io.Writer) *ConsoleOutput {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleOutput{w: w}
}

func (c *ConsoleOutput) WriteMessage(topic string, msg []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintf(c.w, "[%s] %s\n", topic, msg); err != nil {
		return fmt.Errorf("failed to write to console: %w", err)
	}
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }

// JSONOutput appends events as JSON lines under
// <base>/<topic>/year=YYYY/month=MM/day=DD/data.json, partitioned by the
// event's own timestamp.
type JSONOutput struct {
	basePath string
	mu       sync.Mutex
	files    map[string]*os.File
}

func NewJSONOutput(basePath string) *JSONOutput {
	return &JSONOutput{
		basePath: basePath,
		files:    make(map[string]*os.File),
	}
}

func (j *JSONOutput) WriteMessage(topic string, msg []byte) error {
	var event struct {
		Timestamp *int64 `json:"timestamp"`
	}
	if err := json.Unmarshal(msg, &event); err != nil {
		return err
	}
	if event.Timestamp == nil {
		return fmt.Errorf("invalid timestamp")
	}

	eventTime := time.Unix(*event.Timestamp, 0).UTC()
	year, month, day := eventTime.Date()
	partitionPath := fmt.Sprintf("year=%d/month=%02d/day=%02d", year, month, day)
	fullPath := filepath.Join(j.basePath, topic, partitionPath)

	j.mu.Lock()
	defer j.mu.Unlock()

	fileKey := topic + "_" + partitionPath
	file, ok := j.files[fileKey]
	if !ok {
		if err := os.MkdirAll(fullPath, os.ModePerm); err != nil {
			return err
		}
		var err error
		file, err = os.OpenFile(filepath.Join(fullPath, "data.json"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}
		j.files[fileKey] = file
	}

	if _, err := file.Write(msg); err != nil {
		return err
	}
	_, err := file.WriteString("\n")
	return err
}

func (j *JSONOutput) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	var firstErr error
	for key, f := range j.files {
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(j.files, key)
	}
	return firstErr
}

type KafkaOutput struct {
	producer sarama.SyncProducer
}

func NewKafkaOutput(config *models.Config) (*KafkaOutput, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Retry.Backoff = 100 * time.Millisecond
	saramaConfig.Producer.Return.Successes = true // Must be true for SyncProducer
	saramaConfig.Net.DialTimeout = 30 * time.Second
	saramaConfig.Net.ReadTimeout = 30 * time.Second
	saramaConfig.Net.WriteTimeout = 30 * time.Second

	brokerList := strings.Split(config.KafkaBrokerList, ",")

	producer, err := sarama.NewSyncProducer(brokerList, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Sarama producer: %w", err)
	}

	log.Info().Strs("brokers", brokerList).Msg("Kafka producer created")
	return NewKafkaOutputWithProducer(producer), nil
}

func NewKafkaOutputWithProducer(p sarama.SyncProducer) *KafkaOutput {
	return &KafkaOutput{producer: p}
}

func (k *KafkaOutput) WriteMessage(topic string, msg []byte) error {
	if k.producer == nil {
		return fmt.Errorf("kafka producer is closed")
	}
	_, _, err := k.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Value: sarama.ByteEncoder(msg),
	})
	return err
}

func (k *KafkaOutput) Close() error {
	if k.producer != nil {
		err := k.producer.Close()
		k.producer = nil
		return err
	}
	return nil
}

// NewDestination picks Kafka when enabled, JSON files when an output path is
// set, and the console otherwise.
func NewDestination(config *models.Config) (Destination, error) {
	switch {
	case config.KafkaEnabled:
		return NewKafkaOutput(config)
	case config.OutputFile != "":
		return NewJSONOutput(config.OutputFile), nil
	default:
		return NewConsoleOutput(os.Stdout), nil
	}
}
