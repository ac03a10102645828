package errx

// RegistryEntry describes a registered error code.
type RegistryEntry struct {
	Code        string
	Description string
}

// Error codes follow a stable 5-digit scheme where the first two digits are the
// domain and the last three digits are reserved for subcodes.
const (
	CodeCLI      = "70000"
	CodeAuth     = "71000"
	CodeBuild    = "72000"
	CodePromote  = "73000"
	CodeTransfer = "74000"
	CodeParse    = "75000"
	CodeConfig   = "76000"
	CodeRegistry = "77000"
)

const (
	DescCLI      = "CLI/argument validation error"
	DescAuth     = "Registry authentication error"
	DescBuild    = "Image build error"
	DescPromote  = "Promotion error"
	DescTransfer = "Image transfer error"
	DescParse    = "Input parse error"
	DescConfig   = "Configuration error"
	DescRegistry = "Registry API error"
)

var registryEntries = []RegistryEntry{
	{Code: CodeCLI, Description: DescCLI},
	{Code: CodeAuth, Description: DescAuth},
	{Code: CodeBuild, Description: DescBuild},
	{Code: CodePromote, Description: DescPromote},
	{Code: CodeTransfer, Description: DescTransfer},
	{Code: CodeParse, Description: DescParse},
	{Code: CodeConfig, Description: DescConfig},
	{Code: CodeRegistry, Description: DescRegistry},
}

var registryMap = map[string]string{
	CodeCLI:      DescCLI,
	CodeAuth:     DescAuth,
	CodeBuild:    DescBuild,
	CodePromote:  DescPromote,
	CodeTransfer: DescTransfer,
	CodeParse:    DescParse,
	CodeConfig:   DescConfig,
	CodeRegistry: DescRegistry,
}

// ErrorRegistry returns the error registry in deterministic order.
// This provides a list of all registered error codes and their descriptions.
func ErrorRegistry() []RegistryEntry {
	entries := make([]RegistryEntry, len(registryEntries))
	copy(entries, registryEntries)
	return entries
}

// DescriptionFor returns the registry description for a code.
func DescriptionFor(code string) (string, bool) {
	desc, ok := registryMap[code]
	return desc, ok
}

// IsValidCode checks if the given error code is registered.
func IsValidCode(code string) bool {
	_, ok := registryMap[code]
	return ok
}
