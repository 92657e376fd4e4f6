package links

// Link is one stored code to URL mapping. CreatedAt is Unix seconds,
// stamped by the process that inserted the row.
type Link struct {
	Code      string
	URL       string
	CreatedAt int64
}
