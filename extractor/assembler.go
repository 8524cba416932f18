package extractor

import "github.com/use-agent/channelscope/models"

// Assemble maps extracted fields onto the response schema. The unsupported
// sub-records are always filled with their fixed markers.
func Assemble(f Fields) models.ChannelRecord {
	status := models.MonetizationLikelyDisabled
	if f.Monetized {
		status = models.MonetizationLikelyEnabled
	}

	tags := make([]string, 0, len(f.Tags))
	tags = append(tags, f.Tags...)

	return models.ChannelRecord{
		Monetization: models.Monetization{
			Status:  status,
			Checked: true,
		},
		Tags:      tags,
		ChannelID: orNotAvailable(f.ChannelID),
		Thumbnail: f.Thumbnail,
		Earnings:  models.UnsupportedEarnings(),
		Shadowban: models.UnsupportedShadowban(),
		ChannelInfo: models.ChannelInfo{
			Name:        orNotAvailable(f.Name),
			Subscribers: orNotAvailable(f.Subscribers),
			TotalViews:  orNotAvailable(f.TotalViews),
			VideoCount:  orNotAvailable(f.VideoCount),
		},
	}
}

// orNotAvailable guards against a zero-value Fields reaching the assembler.
func orNotAvailable(s string) string {
	if s == "" {
		return models.NotAvailable
	}
	return s
}
