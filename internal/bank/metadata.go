package bank

import "encoding/json"

// APIVersion selects which metadata shape the remote service speaks.
type APIVersion int

const (
	APIVersionV1 APIVersion = 1
	APIVersionV2 APIVersion = 2
)

// Metadata is the descriptive payload attachable to any domain object.
// The two wire shapes are not compatible, so each is its own variant.
type Metadata interface {
	APIVersion() APIVersion
	KeywordList() []string
}

// MetadataV1 is the keywords/images shape.
type MetadataV1 struct {
	Keywords []string
	Images   []string
}

// MetadataV2 is the classification shape.
type MetadataV2 struct {
	Keywords  []string
	Languages []string
	Subject   []string
	AgeLevels []string
}

var (
	_ Metadata = (*MetadataV1)(nil)
	_ Metadata = (*MetadataV2)(nil)
)

// NewMetadata returns an empty metadata variant for the given version.
// Unknown versions fall back to V1.
func NewMetadata(version APIVersion) Metadata {
	if version == APIVersionV2 {
		return &MetadataV2{
			Keywords:  []string{},
			Languages: []string{},
			Subject:   []string{},
			AgeLevels: []string{},
		}
	}
	return &MetadataV1{Keywords: []string{}, Images: []string{}}
}

func (m *MetadataV1) APIVersion() APIVersion { return APIVersionV1 }
func (m *MetadataV1) KeywordList() []string  { return nonNil(m.Keywords) }

func (m *MetadataV1) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Keywords []string `json:"keywords"`
		Images   []string `json:"images"`
	}{nonNil(m.Keywords), nonNil(m.Images)})
}

func (m *MetadataV2) APIVersion() APIVersion { return APIVersionV2 }
func (m *MetadataV2) KeywordList() []string  { return nonNil(m.Keywords) }

func (m *MetadataV2) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Keywords  []string `json:"keywords"`
		Languages []string `json:"languages"`
		Subject   []string `json:"subject"`
		AgeLevels []string `json:"age_levels"`
	}{nonNil(m.Keywords), nonNil(m.Languages), nonNil(m.Subject), nonNil(m.AgeLevels)})
}

// HasMetadata gives a domain object an optional Metadata attachment.
// It is embedded by Questionset, Question and Answer.
type HasMetadata struct {
	metadata Metadata
}

// SetMetadata replaces the attached metadata.
func (h *HasMetadata) SetMetadata(m Metadata) {
	h.metadata = m
}

// Metadata returns the attached metadata, or nil when none was attached.
func (h *HasMetadata) Metadata() Metadata {
	return h.metadata
}

// EnsureMetadata attaches an empty variant when nothing is attached yet and
// returns the attached metadata.
func (h *HasMetadata) EnsureMetadata(version APIVersion) Metadata {
	if h.metadata == nil {
		h.metadata = NewMetadata(version)
	}
	return h.metadata
}

// Keywords returns the attached keywords, never nil.
func (h *HasMetadata) Keywords() []string {
	if h.metadata == nil {
		return []string{}
	}
	return h.metadata.KeywordList()
}

// Images returns the v1 image list. V2 metadata carries no images.
func (h *HasMetadata) Images() []string {
	if m, ok := h.metadata.(*MetadataV1); ok && len(m.Images) > 0 {
		return m.Images
	}
	return []string{}
}

// ImageAt returns the image at index, if present and non-empty.
func (h *HasMetadata) ImageAt(index int) (string, bool) {
	images := h.Images()
	if index < 0 || index >= len(images) || images[index] == "" {
		return "", false
	}
	return images[index], true
}

func cloneMetadata(m Metadata) Metadata {
	switch v := m.(type) {
	case *MetadataV1:
		return &MetadataV1{
			Keywords: append([]string{}, v.Keywords...),
			Images:   append([]string{}, v.Images...),
		}
	case *MetadataV2:
		return &MetadataV2{
			Keywords:  append([]string{}, v.Keywords...),
			Languages: append([]string{}, v.Languages...),
			Subject:   append([]string{}, v.Subject...),
			AgeLevels: append([]string{}, v.AgeLevels...),
		}
	default:
		return m
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
