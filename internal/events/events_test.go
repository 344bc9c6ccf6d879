package events

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IBM/sarama/mocks"
	"github.com/chrisdamba/whattoeat/internal/models"
)

func sampleRecord() *models.SpinRecord {
	return &models.SpinRecord{
		ID:           "spin-1",
		SessionID:    "session-1",
		Category:     "thai",
		SectionIndex: 8,
		ItemID:       "thai-1",
		ItemName:     "Pad Thai",
		Rotation:     2345.5,
		Location:     models.DefaultLocation,
		CreatedAt:    time.Date(2024, 3, 9, 18, 30, 0, 0, time.UTC),
	}
}

func TestNewSpinEvent(t *testing.T) {
	e := NewSpinEvent(sampleRecord())
	if e.EventType != models.EventSpinCompleted || e.Category != "thai" || e.Timestamp != 1710009000 {
		t.Errorf("NewSpinEvent() = %+v", e)
	}
	msg, err := Encode(models.TopicWheelSpins, e)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Topic != models.TopicWheelSpins || !bytes.Contains(msg.Message, []byte(`"itemName":"Pad Thai"`)) {
		t.Errorf("Encode() = %s %s", msg.Topic, msg.Message)
	}
}

func TestNewSearchEventType(t *testing.T) {
	at := time.Unix(100, 0)
	if e := NewSearchEvent("s", "Thai", models.DefaultLocation, 3, false, time.Second, at); e.EventType != models.EventRestaurantsFound || e.DurationMs != 1000 {
		t.Errorf("live search event = %+v", e)
	}
	if e := NewSearchEvent("s", "Thai", models.DefaultLocation, 3, true, 0, at); e.EventType != models.EventRestaurantFallback {
		t.Errorf("sample search event = %+v", e)
	}
}

func TestConsoleOutput(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsoleOutput(&buf)
	if err := c.WriteMessage("wheel_spins", []byte(`{"a":1}`)); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[wheel_spins] {\"a\":1}\n" {
		t.Errorf("console wrote %q", got)
	}
}

func TestJSONOutputPartitions(t *testing.T) {
	dir := t.TempDir()
	out := NewJSONOutput(dir)
	p := NewPublisher(out)

	p.Publish(models.TopicWheelSpins, NewSpinEvent(sampleRecord()))
	p.Publish(models.TopicWheelSpins, NewSpinEvent(sampleRecord()))
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, models.TopicWheelSpins, "year=2024", "month=03", "day=09", "data.json")
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("partition file missing: %v", err)
	}
	defer f.Close()

	lines := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e SpinEvent
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			t.Fatalf("line %d: %v", lines, err)
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("wrote %d lines, want 2", lines)
	}

	if err := NewJSONOutput(dir).WriteMessage("x", []byte(`{"noTimestamp":true}`)); err == nil || !strings.Contains(err.Error(), "timestamp") {
		t.Errorf("missing timestamp error = %v", err)
	}
}

func TestKafkaOutput(t *testing.T) {
	producer := mocks.NewSyncProducer(t, nil)
	producer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if !bytes.Contains(val, []byte(`"eventType":"SpinCompleted"`)) {
			return errors.New("unexpected payload " + string(val))
		}
		return nil
	})
	producer.ExpectSendMessageAndFail(errors.New("broker down"))

	out := NewKafkaOutputWithProducer(producer)
	msg, _ := Encode(models.TopicWheelSpins, NewSpinEvent(sampleRecord()))
	if err := out.WriteMessage(msg.Topic, msg.Message); err != nil {
		t.Fatalf("first send error = %v", err)
	}
	if err := out.WriteMessage(msg.Topic, msg.Message); err == nil {
		t.Error("second send should fail")
	}
	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if err := out.WriteMessage(msg.Topic, msg.Message); err == nil {
		t.Error("send after close should fail")
	}
}

type failingDestination struct{ calls int }

func (f *failingDestination) WriteMessage(string, []byte) error {
	f.calls++
	return errors.New("sink unavailable")
}

func (f *failingDestination) Close() error { return nil }

func TestPublisherSwallowsErrors(t *testing.T) {
	dest := &failingDestination{}
	p := NewPublisher(dest)
	p.Publish(models.TopicRestaurantSearches, map[string]int{"timestamp": 1})
	p.Publish(models.TopicRestaurantSearches, func() {})
	if dest.calls != 1 {
		t.Errorf("destination called %d times, want 1 (unencodable event dropped)", dest.calls)
	}

	var nilPublisher *Publisher
	nilPublisher.Publish("x", 1)
	if err := nilPublisher.Close(); err != nil {
		t.Error(err)
	}
}

func TestNewDestination(t *testing.T) {
	d, err := NewDestination(&models.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := d.(*ConsoleOutput); !ok {
		t.Errorf("default destination = %T", d)
	}
	d, _ = NewDestination(&models.Config{OutputFile: t.TempDir()})
	if _, ok := d.(*JSONOutput); !ok {
		t.Errorf("file destination = %T", d)
	}
}
