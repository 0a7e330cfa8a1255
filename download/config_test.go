package download

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTransferConfig_Validate(t *testing.T) {
	testCases := map[string]struct {
		cfg        TransferConfig
		wantFields []string
	}{
		"defaults":        {cfg: DefaultTransferConfig()},
		"overwrite":       {cfg: TransferConfig{ChunkSize: 1, Overwrite: true}},
		"zeroChunk":       {cfg: TransferConfig{ChunkSize: 0}, wantFields: []string{"chunk_size"}},
		"negativeRetries": {cfg: TransferConfig{ChunkSize: 8, MaxRetries: -1}, wantFields: []string{"max_retries"}},
		"both":            {cfg: TransferConfig{ChunkSize: -5, MaxRetries: -1}, wantFields: []string{"chunk_size", "max_retries"}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantFields == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var fe FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %T: %v", err, err)
			}

			var got []string
			for _, f := range fe {
				got = append(got, f.Field)
				if f.Err == "" {
					t.Errorf("field %s has empty message", f.Field)
				}
			}
			if diff := cmp.Diff(tc.wantFields, got); diff != "" {
				t.Errorf("fields mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDefaultTransferConfig(t *testing.T) {
	want := TransferConfig{ChunkSize: 1024, Overwrite: false, MaxRetries: 1}
	if diff := cmp.Diff(want, DefaultTransferConfig()); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
}

func TestFieldErrors_Fields(t *testing.T) {
	fe := FieldErrors{
		{Field: "chunk_size", Err: "too small"},
		{Field: "max_retries", Err: "negative"},
	}

	want := map[string]string{"chunk_size": "too small", "max_retries": "negative"}
	if diff := cmp.Diff(want, fe.Fields()); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	if got := fe.Error(); got != "chunk_size: too small; max_retries: negative" {
		t.Errorf("Error() = %q", got)
	}
}
