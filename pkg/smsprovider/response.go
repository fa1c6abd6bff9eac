package smsprovider

type Response struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

type LookupResult struct {
	PhoneNumber string  `json:"phone_number"`
	Carrier     Carrier `json:"carrier"`
}

type Carrier struct {
	Name string `json:"name"`
	// Type is one of mobile, landline or voip.
	Type string `json:"type"`
}
