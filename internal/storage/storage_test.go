package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"campusapi/internal/config"
)

func TestNewObjectKey(t *testing.T) {
	tests := []struct {
		filename string
		ext      string
	}{
		{"pan.JPG", ".jpg"},
		{"scan.final.png", ".png"},
		{`C:\Users\me\card.jpeg`, ".jpeg"},
		{"../../etc/passwd", ""},
		{"noext", ""},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			key := NewObjectKey(IDCardPrefix, tt.filename)
			assert.True(t, strings.HasPrefix(key, "idcards/"), key)
			assert.True(t, strings.HasSuffix(key, tt.ext), key)
			assert.Equal(t, len("idcards/")+36+len(tt.ext), len(key))
		})
	}

	assert.NotEqual(t, NewObjectKey(IDCardPrefix, "a.jpg"), NewObjectKey(IDCardPrefix, "a.jpg"))
}

func TestNewMinIO_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.MinIOConfig
		want string
	}{
		{"no endpoint", config.MinIOConfig{}, "endpoint"},
		{"no credentials", config.MinIOConfig{Endpoint: "localhost:9000", Bucket: "kyc"}, "credentials"},
		{"no bucket", config.MinIOConfig{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "b"}, "bucket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewMinIO(context.Background(), tt.cfg)
			assert.Nil(t, s)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
