package entities_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/superfaceai/one-sdk-sub004/domain/entities"
)

func TestNormalizeHeaders(t *testing.T) {
	h := entities.NormalizeHeaders(map[string][]string{
		"Content-Type": {"application/json"},
		"X-Trace":      {"a"},
		"x-trace":      {"b"},
	})

	assert.Equal(t, "application/json", h.Get("content-type"))
	assert.Equal(t, "application/json", h.Get("CONTENT-TYPE"))
	assert.Equal(t, []string{"a", "b"}, h.Values("X-Trace"))
	assert.NotContains(t, h, "Content-Type")
}

func TestMultimap_SetDel(t *testing.T) {
	h := entities.Multimap{}
	h.Add("Accept", "text/plain")
	h.Add("accept", "application/json")
	assert.Equal(t, []string{"text/plain", "application/json"}, h.Values("ACCEPT"))

	h.Set("Accept", "*/*")
	assert.Equal(t, []string{"*/*"}, h.Values("accept"))

	h.Del("ACCEPT")
	assert.False(t, h.Has("accept"))
}

func TestMultimap_Encode(t *testing.T) {
	tests := []struct {
		name string
		in   entities.Multimap
		want string
	}{
		{"repeated values keep order", entities.Multimap{"a": {"1", "2"}}, "a=1&a=2"},
		{"names sorted", entities.Multimap{"b": {"x"}, "a": {"y"}}, "a=y&b=x"},
		{"escaping", entities.Multimap{"q": {"a b&c"}}, "q=a+b%26c"},
		{"empty", entities.Multimap{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Encode())
		})
	}
}

func TestMultimap_Clone(t *testing.T) {
	orig := entities.Multimap{"a": {"1"}}
	clone := orig.Clone()
	clone.Add("a", "2")

	assert.Equal(t, []string{"1"}, orig["a"])
	assert.Nil(t, entities.Multimap(nil).Clone())
}
