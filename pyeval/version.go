package pyeval

// Version is the release version of the pyeval library and CLI.
const Version = "0.2.0"
