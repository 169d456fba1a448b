package markov

// Version is the release of the library and the markov CLI.
var Version = "0.3.0"
