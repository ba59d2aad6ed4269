package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/festival-map/internal/config"
	"github.com/couchcryptid/festival-map/internal/domain"
)

type mockMessageWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (m *mockMessageWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, msgs...)
	return nil
}

func (m *mockMessageWriter) Close() error {
	m.closed = true
	return nil
}

func testArtifacts(t *testing.T) domain.Artifacts {
	t.Helper()
	rows := []domain.RawRow{
		{Line: 1, Name: "A", Country: "Itália", Continent: "Europa", Coordinates: "45.0,10.0", Attendance: "15000"},
		{Line: 2, Name: "B", Country: "Quênia", Continent: "África", Coordinates: "-1.0,36.0", Attendance: "25000"},
		{Line: 3, Name: "C", Country: "Japão", Continent: "Ásia", Coordinates: "bad,coord"},
	}
	records := domain.ParseRows(rows, domain.DefaultPalette())
	fc, err := domain.BuildFeatureCollection(records, domain.BuildOptions{})
	require.NoError(t, err)
	return domain.Artifacts{Records: records, Collection: fc}
}

func newTestWriter(mw messageWriter) *Writer {
	return &Writer{writer: mw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestSerializeToMessage(t *testing.T) {
	art := testArtifacts(t)
	f := art.Collection.Features[0]

	msg, err := serializeToMessage(f)
	require.NoError(t, err)

	assert.Equal(t, []byte(f.ID), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "continent", msg.Headers[0].Key)
	assert.Equal(t, []byte("Europa"), msg.Headers[0].Value)
	assert.Equal(t, "size", msg.Headers[1].Key)
	assert.Equal(t, []byte("Medium"), msg.Headers[1].Value)

	var decoded struct {
		Type     string `json:"type"`
		ID       string `json:"id"`
		Geometry struct {
			Coordinates []float64 `json:"coordinates"`
		} `json:"geometry"`
		Properties map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "Feature", decoded.Type)
	assert.Equal(t, f.ID, decoded.ID)
	assert.Equal(t, []float64{10.0, 45.0}, decoded.Geometry.Coordinates)
	assert.Equal(t, "A", decoded.Properties["name"])
}

func TestWriter_Load(t *testing.T) {
	mw := &mockMessageWriter{}
	art := testArtifacts(t)

	require.NoError(t, newTestWriter(mw).Load(context.Background(), art))

	require.Len(t, mw.msgs, 2)
	assert.Equal(t, []byte(art.Collection.Features[0].ID), mw.msgs[0].Key)
	assert.Equal(t, []byte(art.Collection.Features[1].ID), mw.msgs[1].Key)
	assert.Equal(t, []byte("Large"), mw.msgs[1].Headers[1].Value)
}

func TestWriter_LoadNoFeatures(t *testing.T) {
	mw := &mockMessageWriter{}
	require.NoError(t, newTestWriter(mw).Load(context.Background(), domain.Artifacts{}))
	assert.Empty(t, mw.msgs)
}

func TestWriter_LoadError(t *testing.T) {
	mw := &mockMessageWriter{err: errors.New("broker down")}

	err := newTestWriter(mw).Load(context.Background(), testArtifacts(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish features")
	assert.Contains(t, err.Error(), "broker down")
}

func TestWriter_Close(t *testing.T) {
	mw := &mockMessageWriter{}
	require.NoError(t, newTestWriter(mw).Close())
	assert.True(t, mw.closed)
}

func TestNewWriter_UsesConfig(t *testing.T) {
	w := NewWriter(&config.Config{KafkaBrokers: []string{"localhost:9092"}, KafkaTopic: "festival-features"}, slog.Default())

	kw, ok := w.writer.(*kafkago.Writer)
	require.True(t, ok)
	assert.Equal(t, "festival-features", kw.Topic)
	assert.Equal(t, "localhost:9092", kw.Addr.String())
}
