package company

// Company is the tenant. Timezone is an IANA name; an empty or unknown value
// falls back to the configured default timezone.
type Company struct {
	ID       string
	Name     string
	Timezone string
}
