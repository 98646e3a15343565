// Package constants provides named constants used throughout the hardsize codebase.
// This centralizes epJSON class names, field keys and defaults in one place.
package constants

// epJSON classes and fields read or written outside the field dictionary.
const (
	// VersionClass holds the engine version object of a model document.
	VersionClass = "Version"

	// VersionIdentifierField is the field of the Version object naming the engine version (e.g. "22.1").
	VersionIdentifierField = "version_identifier"

	// SimulationControlClass holds the run-level switches, including the sizing flags.
	SimulationControlClass = "SimulationControl"

	// SizingSystemClass triggers air-system autosizing.
	SizingSystemClass = "Sizing:System"

	// SizingPlantClass triggers plant-loop autosizing.
	SizingPlantClass = "Sizing:Plant"

	// DoSystemSizingField is the SimulationControl flag paired with Sizing:System.
	DoSystemSizingField = "do_system_sizing_calculation"

	// DoPlantSizingField is the SimulationControl flag paired with Sizing:Plant.
	DoPlantSizingField = "do_plant_sizing_calculation"

	// FlagDisabled is the value written into a SimulationControl flag when its directive is removed.
	FlagDisabled = "No"
)

// SizingDirective pairs a whole-model sizing class with the SimulationControl
// flag that must be switched off once the class is removed.
type SizingDirective struct {
	Class string
	Flag  string
}

// SizingDirectives lists the directive classes in the order they are removed.
var SizingDirectives = []SizingDirective{
	{Class: SizingSystemClass, Flag: DoSystemSizingField},
	{Class: SizingPlantClass, Flag: DoPlantSizingField},
}

// Autosize markers used by the engine in place of a concrete value.
const (
	AutosizeValue      = "Autosize"
	AutocalculateValue = "Autocalculate"
)

// Results store layout.
const (
	// ComponentSizesTable is the engine's sizing summary table.
	ComponentSizesTable = "ComponentSizes"
)

// File naming defaults.
const (
	// ModelExtension is the model document extension, matched case-insensitively.
	ModelExtension = ".epjson"

	// ResultsExtension is the engine SQLite output paired with each model.
	ResultsExtension = ".sql"

	// DictionaryExtension is the field dictionary file extension.
	DictionaryExtension = ".csv"

	// DefaultOutputSuffix is appended to the model stem for the hardsized document.
	DefaultOutputSuffix = "_out"

	// DefaultOutputExtension is the extension used for written documents.
	DefaultOutputExtension = ".epJSON"

	// DefaultIndent matches the indentation EnergyPlus tools use for epJSON.
	DefaultIndent = "    "

	// DefaultDictionaryDir is resolved relative to the working directory.
	DefaultDictionaryDir = "dictionaries"

	// DecisionLogFile is the JSONL trace written at debug level.
	DecisionLogFile = "hardsize.decisions.jsonl"
)

// Batch defaults.
const (
	// DefaultJobs processes documents one at a time.
	DefaultJobs = 1
)
