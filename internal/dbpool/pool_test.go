package dbpool_test

import (
	"context"
	"testing"

	"github.com/gigboard/gigadmin/internal/dbpool"
)

func TestNewPoolRejectsBadURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"garbage", "postgres://%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := dbpool.NewPool(context.Background(), dbpool.Options{URL: tt.url})
			if err == nil {
				p.Close()
				t.Fatal("expected an error")
			}
		})
	}
}
