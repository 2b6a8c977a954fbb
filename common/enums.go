// Shared enums live in their own package so that both the CLI and the
// library packages can use them without pulling in configuration types.
package common

// Specification of requested output conversion, applied as the last
// pipeline step.
// ENUM(plain, djot, html, markdown)
type OutputFormat int

// Specification of result shape: default content-centric result or the
// flat element-based projection.
// ENUM(default, elementBased)
type ResultFormat int

// Coarse ordering over post-processors, independent of priority.
// ENUM(early, middle, late)
type ProcessingStage int
