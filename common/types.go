package common

// Slide is one titled unit of narration parsed from a generated script.
type Slide struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PipelineConfig struct {
	EmailPath string // .txt, .eml or .pdf; empty when EmailText is set
	EmailText string
	OutputDir string
	GeminiKey string
	Model     string

	// Narration
	TTSProvider string // "sarvam" or "deepgram"
	SarvamKey   string
	DeepgramKey string
	Language    string // en-US, en-GB, en-AU, en-IN
	Speed       float64

	// Video
	Template      string
	LogoEveryPage bool
	Sharpen       bool
	Subtitles     bool
	MusicPath     string
	SkipVideo     bool

	// Research collaborators
	SearchKey string
	SearchCX  string
	RedisURL  string

	Phone string // WhatsApp recipient, optional
}

// Dossier section headers, in the order the research prompt asks for them
const (
	SecOrganization = "ORGANIZATION"
	SecDetails      = "ORGANIZATION DETAILS"
	SecReferences   = "INTERVIEW REFERENCES"
	SecPreparation  = "ROLE-SPECIFIC PREPARATION"
	SecHighlights   = "INTERVIEW HIGHLIGHTS"
	SecAdditional   = "ADDITIONAL RESOURCES"
	SecCulture      = "COMPANY CULTURE & VALUES"
)

// DossierSectionOrder returns the standard order of dossier sections
func DossierSectionOrder() []string {
	return []string{SecOrganization, SecDetails, SecReferences, SecPreparation, SecHighlights, SecAdditional, SecCulture}
}
