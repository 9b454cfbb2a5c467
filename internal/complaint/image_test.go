package complaint_test

import (
	"bytes"
	"encoding/base64"
	"testing"

	"complaintdesk/backend/internal/complaint"
	"complaintdesk/backend/internal/config"
	"complaintdesk/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func dataURL(mime string, raw []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw)
}

func TestValidateImage(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "png", url: dataURL("image/png", pngHeader)},
		{name: "jpeg", url: dataURL("image/jpeg", []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01"))},
		{name: "not a data url", url: "https://example.com/a.png", wantErr: true},
		{name: "missing base64 marker", url: "data:image/png," + base64.StdEncoding.EncodeToString(pngHeader), wantErr: true},
		{name: "gif not allowed", url: dataURL("image/gif", []byte("GIF89a")), wantErr: true},
		{name: "declared png but text", url: dataURL("image/png", []byte("hello world")), wantErr: true},
		{name: "broken base64", url: "data:image/png;base64,!!!", wantErr: true},
		{
			name:    "too large",
			url:     dataURL("image/png", append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, config.MaxImageSize)...)),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := complaint.ValidateImage(tt.url)
			if tt.wantErr {
				assert.ErrorIs(t, err, models.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDisplay_DerivedFields(t *testing.T) {
	v := complaint.Display(models.Complaint{
		Category: "Security",
		Priority: models.PriorityUrgent,
		Status:   models.StatusOnHold,
	})

	assert.Equal(t, "danger", v.CategoryBadge)
	assert.Equal(t, "danger", v.PriorityBadge)
	assert.Equal(t, "warning", v.StatusBadge)
	assert.Equal(t, 25, v.Progress)

	unknown := complaint.Display(models.Complaint{Category: "Karaoke", Status: models.StatusResolved})
	assert.Equal(t, config.DefaultBadge, unknown.CategoryBadge)
	assert.Equal(t, 100, unknown.Progress)
	assert.Len(t, complaint.DisplayAll([]models.Complaint{{}, {}}), 2)
}
