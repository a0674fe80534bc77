// Package metadata loads council records from markdown files with TOML
// front matter. Records live in kind subfolders (councils, personas,
// members, chairmen, stages, prompts) under a root directory; the schema is
// tolerant, unknown keys are logged and ignored. The Store doubles as the
// engine's persona loader.
package metadata
