// Package litkit contains tools for working with large literary works
// metadata dumps, mainly a streaming splitter that turns one huge JSON
// object into bounded batch files.
package litkit

// Version of the toolkit.
const Version = "0.2.1"
