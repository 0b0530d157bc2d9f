package dossier

import "strings"

// CompanyProfile is pre-verified public data about a well-known employer
type CompanyProfile struct {
	Website      string
	LinkedIn     string
	Facebook     string
	Twitter      string
	Instagram    string
	Headquarters string
	Founded      string
	Size         string
	Overview     string
}

// Social returns the profile link for a platform name
func (p CompanyProfile) Social(platform string) string {
	switch platform {
	case "facebook":
		return p.Facebook
	case "twitter":
		return p.Twitter
	case "instagram":
		return p.Instagram
	case "linkedin":
		return p.LinkedIn
	}
	return ""
}

var knownCompanies = map[string]CompanyProfile{
	"apple": {
		Website:      "https://www.apple.com/",
		LinkedIn:     "https://www.linkedin.com/company/apple/",
		Facebook:     "https://www.facebook.com/Apple/",
		Twitter:      "https://twitter.com/Apple",
		Instagram:    "https://www.instagram.com/apple/",
		Headquarters: "Cupertino, California, USA",
		Founded:      "1976",
		Size:         "164,000+ employees",
		Overview:     "Technology company specializing in consumer electronics, software, and online services",
	},
	"google": {
		Website:      "https://www.google.com/",
		LinkedIn:     "https://www.linkedin.com/company/google/",
		Facebook:     "https://www.facebook.com/Google/",
		Twitter:      "https://twitter.com/Google",
		Instagram:    "https://www.instagram.com/google/",
		Headquarters: "Mountain View, California, USA",
		Founded:      "1998",
		Size:         "156,000+ employees",
		Overview:     "Technology company specializing in Internet-related services and products",
	},
	"microsoft": {
		Website:      "https://www.microsoft.com/",
		LinkedIn:     "https://www.linkedin.com/company/microsoft/",
		Facebook:     "https://www.facebook.com/Microsoft/",
		Twitter:      "https://twitter.com/Microsoft",
		Instagram:    "https://www.instagram.com/microsoft/",
		Headquarters: "Redmond, Washington, USA",
		Founded:      "1975",
		Size:         "221,000+ employees",
		Overview:     "Technology corporation producing computer software, consumer electronics, and related services",
	},
	"amazon": {
		Website:      "https://www.amazon.com/",
		LinkedIn:     "https://www.linkedin.com/company/amazon/",
		Facebook:     "https://www.facebook.com/Amazon/",
		Twitter:      "https://twitter.com/amazon",
		Instagram:    "https://www.instagram.com/amazon/",
		Headquarters: "Seattle, Washington, USA",
		Founded:      "1994",
		Size:         "1,500,000+ employees",
		Overview:     "E-commerce and cloud computing company",
	},
}

// CompanyKey normalizes a company name for table lookups
func CompanyKey(name string) string {
	r := strings.NewReplacer(" ", "", ".", "", ",", "")
	return r.Replace(strings.ToLower(strings.TrimSpace(name)))
}

// LookupCompany returns the pre-verified profile for a company, if any
func LookupCompany(name string) (CompanyProfile, bool) {
	p, ok := knownCompanies[CompanyKey(name)]
	return p, ok
}
