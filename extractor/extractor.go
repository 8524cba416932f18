package extractor

import (
	"fmt"
	"log/slog"

	"github.com/use-agent/channelscope/models"
)

// Field names used as keys of Fields.Sources.
const (
	FieldName        = "name"
	FieldSubscribers = "subscribers"
	FieldTotalViews  = "totalViews"
	FieldVideoCount  = "videoCount"
	FieldThumbnail   = "thumbnail"
	FieldChannelID   = "channelId"
	FieldTags        = "tags"
)

// Fields is the outcome of running every detector over one document. Missing
// scalar values are already replaced by models.NotAvailable, missing tags
// by an empty slice and a missing thumbnail by "".
type Fields struct {
	Monetized   bool
	Tags        []string
	ChannelID   string
	Thumbnail   string
	Name        string
	Subscribers string
	TotalViews  string
	VideoCount  string

	// Sources maps a field name to the strategy that produced it.
	// Fields that fell back to their placeholder have no entry.
	Sources map[string]string

	// Layout is the structural fingerprint of the document. See Layout.
	Layout uint64
}

// Extractor runs the per-field fallback chains. The zero value is not
// usable; use New.
type Extractor struct {
	Monetization MonetizationDetector

	Name        Chain
	Subscribers Chain
	TotalViews  Chain
	VideoCount  Chain
	Thumbnail   Chain
	ChannelID   Chain
	Tags        Chain
}

// New returns an Extractor wired with the default YouTube chains.
func New() *Extractor {
	return &Extractor{
		Monetization: MarkerDetector{Marker: MonetizationMarker},
		Name:         DefaultNameChain(),
		Subscribers:  DefaultSubscribersChain(),
		TotalViews:   DefaultTotalViewsChain(),
		VideoCount:   DefaultVideoCountChain(),
		Thumbnail:    DefaultThumbnailChain(),
		ChannelID:    DefaultChannelIDChain(),
		Tags:         DefaultTagsChain(),
	}
}

// Extract reads every field from doc. It never fails: a field whose chain
// finds nothing, or whose detector crashes, gets its placeholder.
func (e *Extractor) Extract(doc *Document) Fields {
	f := Fields{Sources: make(map[string]string), Layout: Layout(doc)}

	f.Monetized = e.monetized(doc)

	f.Name = e.scalar(doc, FieldName, e.Name, models.NotAvailable, f.Sources)
	f.Subscribers = e.scalar(doc, FieldSubscribers, e.Subscribers, models.NotAvailable, f.Sources)
	f.TotalViews = e.scalar(doc, FieldTotalViews, e.TotalViews, models.NotAvailable, f.Sources)
	f.VideoCount = e.scalar(doc, FieldVideoCount, e.VideoCount, models.NotAvailable, f.Sources)
	f.ChannelID = e.scalar(doc, FieldChannelID, e.ChannelID, models.NotAvailable, f.Sources)
	f.Thumbnail = e.scalar(doc, FieldThumbnail, e.Thumbnail, "", f.Sources)

	f.Tags = []string{}
	if raw := e.scalar(doc, FieldTags, e.Tags, "", f.Sources); raw != "" {
		f.Tags = SplitTags(raw)
	}

	return f
}

func (e *Extractor) scalar(doc *Document, field string, chain Chain, placeholder string, sources map[string]string) (value string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("extractor: field extraction crashed",
				"field", field,
				"panic", fmt.Sprint(r),
			)
			delete(sources, field)
			value = placeholder
		}
	}()

	v, source, ok := chain.Resolve(doc)
	if !ok {
		return placeholder
	}
	sources[field] = source
	return v
}

func (e *Extractor) monetized(doc *Document) (enabled bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("extractor: monetization detector crashed",
				"panic", fmt.Sprint(r),
			)
			enabled = false
		}
	}()
	if e.Monetization == nil {
		return false
	}
	return e.Monetization.Monetized(doc)
}
