package openfda

// SearchResult is the openFDA search response envelope.
type SearchResult struct {
	Meta    Meta              `json:"meta"`
	Results []DrugApplication `json:"results"`
}

// Meta carries the pagination bookkeeping of a search response.
type Meta struct {
	Results MetaResults `json:"results"`
}

// MetaResults reports the window of the result set this page covers.
type MetaResults struct {
	Skip  int `json:"skip"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// DrugApplication is a single FDA drug application record.
type DrugApplication struct {
	ApplicationNumber string       `json:"application_number"`
	SponsorName       string       `json:"sponsor_name"`
	Products          []Product    `json:"products"`
	Submissions       []Submission `json:"submissions"`
	OpenFDA           OpenFDA      `json:"openfda"`
}

// Product is a drug product within an application.
type Product struct {
	ProductNumber         string `json:"product_number"`
	BrandName             string `json:"brand_name"`
	DosageForm            string `json:"dosage_form"`
	Route                 string `json:"route"`
	MarketingStatus       string `json:"marketing_status"`
	ReferenceDrug         string `json:"reference_drug"`
	ActiveIngredientsText string `json:"active_ingredients_text,omitempty"`
}

// Submission is a regulatory submission within an application.
type Submission struct {
	SubmissionType       string `json:"submission_type"`
	SubmissionNumber     string `json:"submission_number"`
	SubmissionStatus     string `json:"submission_status"`
	SubmissionStatusDate string `json:"submission_status_date"`
	ReviewPriority       string `json:"review_priority"`
}

// OpenFDA is the harmonized name block openFDA attaches to applications.
type OpenFDA struct {
	BrandName    []string `json:"brand_name"`
	GenericName  []string `json:"generic_name"`
	Manufacturer []string `json:"manufacturer_name"`
	Route        []string `json:"route"`
}
