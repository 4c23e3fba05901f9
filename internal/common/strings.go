package common

// UnknownStr is the canonical placeholder for missing provenance values.
const UnknownStr = "unknown"
