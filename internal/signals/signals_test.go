package signals

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"heating_card/internal/models"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/require"
)

func TestStamp(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	s := Stamp(models.Signal{Type: models.SignalMoreInfo}, now)
	require.NotEmpty(t, s.ID)
	require.Equal(t, time.UTC, s.OccurredAt.Location())

	again := Stamp(s, now.Add(time.Hour))
	require.Equal(t, s.ID, again.ID)
	require.True(t, s.OccurredAt.Equal(again.OccurredAt))
}

func TestMulti_JoinsErrors(t *testing.T) {
	ok := &FakeSink{}
	bad := &FakeSink{EmitError: errors.New("broker down")}
	err := Multi{ok, nil, bad}.Emit(context.Background(), models.Signal{Type: models.SignalAction})

	require.Error(t, err)
	require.Contains(t, err.Error(), "broker down")
	require.Equal(t, []string{models.SignalAction}, ok.Types())
	require.Len(t, bad.Signals, 1)
}

func TestFormatPayload(t *testing.T) {
	b, err := FormatPayload(models.Signal{
		ID:   "abc",
		Type: models.SignalMoreInfo,
		Data: models.MoreInfoDetail{EntityID: "climate.room_a_hm"},
	})
	require.NoError(t, err)

	var out struct {
		Type string `json:"type"`
		Data struct {
			EntityID string `json:"entityId"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	require.Equal(t, "hass-more-info", out.Type)
	require.Equal(t, "climate.room_a_hm", out.Data.EntityID)
}

// fakeToken is an already completed paho token.
type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error) *fakeToken {
	t := &fakeToken{done: make(chan struct{}), err: err}
	close(t.done)
	return t
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{}          { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakeClient implements the parts of paho.Client the sink uses.
type fakeClient struct {
	paho.Client
	pubs []published
	err  error
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.pubs = append(f.pubs, published{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return newFakeToken(f.err)
}

func TestMQTTSink_Emit(t *testing.T) {
	client := &fakeClient{}
	sink := newMQTTSink(client, "home/cards/")

	err := sink.Emit(context.Background(), models.Signal{ID: "1", Type: models.SignalConfigChanged})
	require.NoError(t, err)
	require.Len(t, client.pubs, 1)
	require.Equal(t, "home/cards/config-changed", client.pubs[0].topic)
	require.Equal(t, byte(0), client.pubs[0].qos)
	require.False(t, client.pubs[0].retained)

	client.err = errors.New("not connected")
	require.Error(t, sink.Emit(context.Background(), models.Signal{Type: models.SignalAction}))
}

func TestMQTTSink_DefaultPrefix(t *testing.T) {
	sink := newMQTTSink(&fakeClient{}, "")
	require.Equal(t, "heating-card/signals/hass-action", sink.Topic(models.SignalAction))
}
