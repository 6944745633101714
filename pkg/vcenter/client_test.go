package vcenter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildURL(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		want    string
		wantErr bool
	}{
		{
			name: "bare host uses default port",
			cfg:  Config{Host: "vcenter.example.com"},
			want: "https://vcenter.example.com:443/sdk",
		},
		{
			name: "bare host with explicit port",
			cfg:  Config{Host: "10.0.0.5", Port: 8443},
			want: "https://10.0.0.5:8443/sdk",
		},
		{
			name: "https URL without path",
			cfg:  Config{Host: "https://vc.lab"},
			want: "https://vc.lab:443/sdk",
		},
		{
			name: "https URL keeps path and port",
			cfg:  Config{Host: "https://vc.lab:9443/custom"},
			want: "https://vc.lab:9443/custom",
		},
		{
			name: "credentials in URL are dropped",
			cfg:  Config{Host: "https://user:pw@vc.lab/sdk"},
			want: "https://vc.lab:443/sdk",
		},
		{
			name:    "http scheme rejected",
			cfg:     Config{Host: "http://example.com/sdk"},
			wantErr: true,
		},
		{
			name:    "invalid URL",
			cfg:     Config{Host: "http://bad::url"},
			wantErr: true,
		},
		{
			name:    "missing host",
			cfg:     Config{Host: "https:///sdk"},
			wantErr: true,
		},
		{
			name:    "empty host",
			cfg:     Config{Host: "  "},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := buildURL(&tt.cfg)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, u.String())
		})
	}
}

func TestMostFreeDatastore(t *testing.T) {
	tests := []struct {
		name   string
		list   []DatastoreInfo
		want   string
		wantOK bool
	}{
		{
			name:   "highest free wins",
			list:   []DatastoreInfo{{Name: "a", FreeBytes: 10, Accessible: true}, {Name: "b", FreeBytes: 30, Accessible: true}, {Name: "c", FreeBytes: 20, Accessible: true}},
			want:   "b",
			wantOK: true,
		},
		{
			name:   "inaccessible skipped",
			list:   []DatastoreInfo{{Name: "a", FreeBytes: 10, Accessible: true}, {Name: "b", FreeBytes: 99, Accessible: false}},
			want:   "a",
			wantOK: true,
		},
		{
			name:   "tie keeps first",
			list:   []DatastoreInfo{{Name: "a", FreeBytes: 5, Accessible: true}, {Name: "b", FreeBytes: 5, Accessible: true}},
			want:   "a",
			wantOK: true,
		},
		{
			name: "none accessible",
			list: []DatastoreInfo{{Name: "a", FreeBytes: 5}},
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := mostFreeDatastore(tt.list)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got.Name)
			}
		})
	}
}

func TestInferStorageType(t *testing.T) {
	assert.Equal(t, "SSD", inferStorageType("fast-ssd-datastore"))
	assert.Equal(t, "SSD", inferStorageType("NVMe01"))
	assert.Equal(t, "HDD", inferStorageType("slow-hdd"))
}

func TestAuthErrorMessage(t *testing.T) {
	err := &AuthError{Host: "vc:443", Err: assert.AnError}
	assert.Contains(t, err.Error(), "vc:443")
	assert.Contains(t, err.Error(), assert.AnError.Error())
	assert.ErrorIs(t, err, assert.AnError)
}
