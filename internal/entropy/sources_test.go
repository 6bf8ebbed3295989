package entropy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuantumAPISource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "16", r.URL.Query().Get("length"))
		assert.Equal(t, "uint8", r.URL.Query().Get("type"))

		data := make([]int, 16)
		for i := range data {
			data[i] = i * 3 % 256
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data, "success": true})
	}))
	defer srv.Close()

	src := NewQuantumAPISource(srv.URL)
	assert.True(t, src.Raw())

	buf, err := src.Fetch(context.Background(), 16)
	require.NoError(t, err)
	require.Len(t, buf, 16)
	assert.Equal(t, byte(3), buf[1])
}

func TestQuantumAPISource_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
			},
		},
		{
			name: "success false",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": []int{}, "success": false})
			},
		},
		{
			name: "short answer",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"data": []int{1, 2}, "success": true})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewQuantumAPISource(srv.URL).Fetch(context.Background(), 16)
			assert.ErrorIs(t, err, ErrSourceUnavailable)
		})
	}
}

func TestQuantumAPISource_Unreachable(t *testing.T) {
	src := NewQuantumAPISource("http://127.0.0.1:1")
	_, err := src.Fetch(context.Background(), 8)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestBeaconSource_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pulse": map[string]any{"outputValue": "a1b2c3d4"},
		})
	}))
	defer srv.Close()

	src := NewBeaconSource(srv.URL)
	assert.False(t, src.Raw())

	buf, err := src.Fetch(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, buf, 10)
	// The 4-byte pulse cycles to fill the request.
	assert.Equal(t, buf[0], buf[4])
	assert.Equal(t, byte(0xA1), buf[0])
}

func TestBeaconSource_MalformedPulse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"pulse": map[string]any{"outputValue": "not-hex"},
		})
	}))
	defer srv.Close()

	_, err := NewBeaconSource(srv.URL).Fetch(context.Background(), 10)
	assert.ErrorIs(t, err, ErrSourceUnavailable)
}

func TestHardwareSource_Fetch(t *testing.T) {
	buf, err := HardwareSource{}.Fetch(context.Background(), 48)
	require.NoError(t, err)
	assert.Len(t, buf, 48)
}
