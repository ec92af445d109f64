package constants

// Common string constants used throughout the codebase
const (
	// Log levels
	ErrorLevel = "error"

	// Environments
	ProdEnvironment = "prod"
	TestEnvironment = "test"

	// Fee codes recognized by jurisdiction fee-taxability tables
	DocFeeCode          = "doc"
	TitleFeeCode        = "title"
	RegistrationFeeCode = "registration"
	PlateFeeCode        = "plate"

	// F&I product categories
	ServiceContractCategory = "service_contract"
	GAPCategory             = "gap"
	AccessoryCategory       = "accessory"

	// Defaults
	DefaultPort = "8080"
)
