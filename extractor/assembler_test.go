package extractor

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/use-agent/channelscope/models"
)

func TestAssemble_FixedShape(t *testing.T) {
	tests := []struct {
		name   string
		fields Fields
	}{
		{"zero value", Fields{}},
		{"placeholders", New().Extract(nil)},
		{"populated", Fields{
			Monetized: true, Tags: []string{"go"}, ChannelID: "UC1", Thumbnail: "https://img",
			Name: "n", Subscribers: "1", TotalViews: "2 views", VideoCount: "3",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := Assemble(tt.fields)

			body, err := json.Marshal(record)
			require.NoError(t, err)

			var generic map[string]any
			require.NoError(t, json.Unmarshal(body, &generic))
			assert.Len(t, generic, 7)
			for _, key := range []string{"monetization", "tags", "channelId", "thumbnail", "earnings", "shadowban", "channelInfo"} {
				assert.Contains(t, generic, key)
				assert.NotNil(t, generic[key], key)
			}

			info := generic["channelInfo"].(map[string]any)
			for _, key := range []string{"name", "subscribers", "totalViews", "videoCount"} {
				assert.NotEmpty(t, info[key], key)
			}

			assert.Equal(t, models.Earnings{Low: "N/A", High: "N/A"}, record.Earnings)
			assert.Equal(t, models.Shadowban{Status: "Cannot be determined", Checked: false}, record.Shadowban)
			assert.True(t, record.Monetization.Checked)
		})
	}
}

func TestAssemble_MonetizationStatus(t *testing.T) {
	assert.Equal(t, "Likely Enabled", Assemble(Fields{Monetized: true}).Monetization.Status)
	assert.Equal(t, "Likely Disabled", Assemble(Fields{Monetized: false}).Monetization.Status)
}

func TestAssemble_TagsNeverNull(t *testing.T) {
	body, err := json.Marshal(Assemble(Fields{}))
	require.NoError(t, err)
	assert.Contains(t, string(body), `"tags":[]`)
	assert.Contains(t, string(body), `"channelId":"N/A"`)
	assert.Contains(t, string(body), `"thumbnail":""`)
}
