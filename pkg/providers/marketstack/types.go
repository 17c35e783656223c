package marketstack

// Pagination is the envelope Marketstack wraps around every list response.
type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Count  int `json:"count"`
	Total  int `json:"total"`
}

// PriceBar is a single end-of-day or intraday price record.
type PriceBar struct {
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   float64 `json:"volume"`
	AdjClose float64 `json:"adj_close"`
	Symbol   string  `json:"symbol"`
	Exchange string  `json:"exchange"`
	Date     string  `json:"date"`
}

// EODResponse is the response of the /eod endpoint.
type EODResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []PriceBar `json:"data"`
}

// IntradayResponse is the response of the /intraday/latest endpoint.
type IntradayResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []PriceBar `json:"data"`
}

// StockExchange describes the exchange a ticker trades on.
type StockExchange struct {
	Name        string `json:"name"`
	Acronym     string `json:"acronym"`
	Mic         string `json:"mic"`
	Country     string `json:"country"`
	CountryCode string `json:"country_code"`
	City        string `json:"city"`
}

// Ticker is the company profile returned by /tickers/{symbol}.
type Ticker struct {
	Name          string        `json:"name"`
	Symbol        string        `json:"symbol"`
	HasIntraday   bool          `json:"has_intraday"`
	HasEOD        bool          `json:"has_eod"`
	StockExchange StockExchange `json:"stock_exchange"`
}

// Dividend is a single dividend record.
type Dividend struct {
	Date     string  `json:"date"`
	Dividend float64 `json:"dividend"`
	Symbol   string  `json:"symbol"`
}

// DividendsResponse is the response of the /dividends endpoint.
type DividendsResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []Dividend `json:"data"`
}

// Split is a single stock split record.
type Split struct {
	Date        string  `json:"date"`
	SplitFactor float64 `json:"split_factor"`
	Symbol      string  `json:"symbol"`
}

// SplitsResponse is the response of the /splits endpoint.
type SplitsResponse struct {
	Pagination Pagination `json:"pagination"`
	Data       []Split    `json:"data"`
}
