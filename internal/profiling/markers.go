package profiling

import "gorate/domain/rate"

// SampleProfile summarizes a simulated reference population
type SampleProfile struct {
	Reference rate.ReferenceDistribution `json:"reference"`
	Size      int                        `json:"size"`

	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Median   float64 `json:"median"`
	Q25      float64 `json:"q25"`
	Q75      float64 `json:"q75"`
	Skewness float64 `json:"skewness"`
	Kurtosis float64 `json:"kurtosis"` // total, not excess

	Outliers int `json:"outliers"` // outside 1.5 IQR

	// Chi-square goodness of fit against the reference Gamma
	GoodnessStat float64 `json:"goodness_stat"`
	GoodnessP    float64 `json:"goodness_p"`
	Consistent   bool    `json:"consistent"`
}
