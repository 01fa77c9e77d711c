package domain

// AllSentinel is the filter value meaning "no restriction on this dimension".
const AllSentinel = "all"

// Vehicle is one row of the catalog joined with its brand, body type and fuel
// type. Name (car_full_name) is the vehicle identity shared with reviews.
type Vehicle struct {
	ID           int64    `json:"id"`
	BrandID      int64    `json:"brand_id"`
	BrandName    string   `json:"brand_name"`
	Name         string   `json:"name"`
	Price        int      `json:"price"`
	Efficiency   *float64 `json:"efficiency,omitempty"`
	Horsepower   int      `json:"horsepower"`
	Engine       string   `json:"engine"`
	BodyType     string   `json:"body_type"`
	BodyCategory string   `json:"body_category"`
	FuelTypeID   int64    `json:"fuel_type_id"`
	FuelName     string   `json:"fuel_name"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Rating       *float64 `json:"rating,omitempty"`
	Size         *float64 `json:"size,omitempty"`
}

// Job is a row of job_type_info.
type Job struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// JobOrder is the fixed presentation order of jobs, matching their ids.
var JobOrder = []string{"대학생", "사무직", "IT/개발", "서비스직", "생산직", "기타"}

// FilterOptions lists the values a client may choose for each catalog
// dimension. Every list starts with AllSentinel.
type FilterOptions struct {
	BodyTypes []string `json:"body_types"`
	FuelTypes []string `json:"fuel_types"`
	Brands    []string `json:"brands"`
	Jobs      []Job    `json:"jobs"`
}

// WithAll prefixes values with AllSentinel.
func WithAll(values []string) []string {
	out := make([]string, 0, len(values)+1)
	out = append(out, AllSentinel)
	for _, v := range values {
		if v != AllSentinel {
			out = append(out, v)
		}
	}
	return out
}

// IsAll reports whether v leaves a filter dimension unrestricted.
func IsAll(v string) bool {
	return v == "" || v == AllSentinel
}
