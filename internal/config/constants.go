package config

// Default paths for the dataset, assets and databases
const (
	// DefaultDatasetPath is the master bird table shipped alongside the binary
	DefaultDatasetPath = "./Victoria Falls Birding.csv"

	// DefaultImagesDir holds one <English>.jpg per bird
	DefaultImagesDir = "./bird_images/Zipped"

	// DefaultProgressDir is where per-user progress files are written
	DefaultProgressDir = "."

	// DefaultDatabasePath is used by the database progress backend and the sqlite session store
	DefaultDatabasePath = "./birdlearner.db"
)
