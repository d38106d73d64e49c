package checkout

// ValidationError reports user-correctable input problems with field-level
// detail. It covers both local validation and provider rejections of the
// price reference.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// ProviderError is a transient provider or infrastructure failure. The caller
// gets a generic message and may retry; Detail is exposed only in dev.
type ProviderError struct {
	Detail string
}

func (e *ProviderError) Error() string {
	return "failed to create checkout session"
}
