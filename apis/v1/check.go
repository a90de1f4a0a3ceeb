package v1

// CheckConfig is the optional run configuration for dicomcheck. Every field
// may be omitted; the zero value reproduces the default behaviour.
type CheckConfig struct {
	Kind     string    `yaml:"kind,omitempty" json:"kind,omitempty" validate:"omitempty,eq=CheckConfig"`
	Metadata Metadata  `yaml:"metadata,omitempty" json:"metadata,omitempty"`
	Spec     CheckSpec `yaml:"spec,omitempty" json:"spec,omitempty"`
}

type Metadata struct {
	Name string `yaml:"name,omitempty" json:"name,omitempty"`
}

type CheckSpec struct {
	// Extension selects candidate files, compared case-insensitively (default: ".dcm").
	Extension string         `yaml:"extension,omitempty" json:"extension,omitempty" validate:"omitempty,startswith=."`
	Sanitize  *SanitizeSpec  `yaml:"sanitize,omitempty" json:"sanitize,omitempty"`
	Extract   *ExtractSpec   `yaml:"extract,omitempty" json:"extract,omitempty"`
	Oracle    *OracleSpec    `yaml:"oracle,omitempty" json:"oracle,omitempty"`
	Workspace *WorkspaceSpec `yaml:"workspace,omitempty" json:"workspace,omitempty"`
	Output    *OutputSpec    `yaml:"output,omitempty" json:"output,omitempty"`
}

// SanitizeSpec configures name normalization.
type SanitizeSpec struct {
	// Characters are stripped from every extracted name (default: "# ").
	// An explicit empty string disables sanitization.
	Characters *string `yaml:"characters,omitempty" json:"characters,omitempty"`
}

// ExtractSpec configures archive extraction.
type ExtractSpec struct {
	Cab *ToolSpec `yaml:"cab,omitempty" json:"cab,omitempty"`
}

// ToolSpec names an external program and its leading arguments.
type ToolSpec struct {
	Program []string `yaml:"program" json:"program" validate:"required,min=1,dive,required"`
}

// OracleSpec configures the validity oracle.
type OracleSpec struct {
	// Program is the oracle and any leading arguments (default: ["dcmftest"]).
	Program []string `yaml:"program,omitempty" json:"program,omitempty" validate:"omitempty,dive,required"`
	// Timeout bounds one invocation, as a Go duration (default: none).
	Timeout *string `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	// Concurrency is the number of files checked at once (default: 1).
	Concurrency int               `yaml:"concurrency,omitempty" json:"concurrency,omitempty" validate:"omitempty,min=1,max=256"`
	Env         map[string]string `yaml:"env,omitempty" json:"env,omitempty"`
}

// WorkspaceSpec configures the scratch directory.
type WorkspaceSpec struct {
	// Directory is the parent of scratch workspaces (default: OS temp dir).
	Directory string `yaml:"directory,omitempty" json:"directory,omitempty" template:""`
}

// OutputSpec configures where manifests are written.
type OutputSpec struct {
	// Directory receives manifests for the filesystem sink
	// (default: "output" next to the executable).
	Directory string       `yaml:"directory,omitempty" json:"directory,omitempty" template:""`
	Sink      *SinkSpec    `yaml:"sink,omitempty" json:"sink,omitempty"`
	Archive   *ArchiveSpec `yaml:"archive,omitempty" json:"archive,omitempty"`
}

// SinkSpec selects the manifest destination (at most one field should be set).
type SinkSpec struct {
	Filesystem *FilesystemSinkSpec `yaml:"filesystem,omitempty" json:"filesystem,omitempty"`
	Stdout     *StdoutSinkSpec     `yaml:"stdout,omitempty" json:"stdout,omitempty"`
	S3         *S3SinkSpec         `yaml:"s3,omitempty" json:"s3,omitempty"`
}

// FilesystemSinkSpec writes manifests to OutputSpec.Directory.
type FilesystemSinkSpec struct{}

// StdoutSinkSpec writes manifests to standard output (no options currently).
type StdoutSinkSpec struct{}

type S3SinkSpec struct {
	Bucket         string         `yaml:"bucket" json:"bucket" validate:"required"`
	Region         *string        `yaml:"region,omitempty" json:"region,omitempty"`
	Endpoint       *string        `yaml:"endpoint,omitempty" json:"endpoint,omitempty" validate:"omitempty,url"`
	Prefix         *string        `yaml:"prefix,omitempty" json:"prefix,omitempty" template:""`
	ForcePathStyle bool           `yaml:"force_path_style,omitempty" json:"force_path_style,omitempty"`
	Credentials    *S3Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`
}

type S3Credentials struct {
	AccessKeyID     string `yaml:"access_key_id" json:"access_key_id" validate:"required" template:""`
	SecretAccessKey string `yaml:"secret_access_key" json:"secret_access_key" validate:"required" template:""`
}

// ArchiveSpec bundles both manifests into one tar archive.
type ArchiveSpec struct {
	// Compression is gzip, zstd or none (default: gzip).
	Compression string `yaml:"compression,omitempty" json:"compression,omitempty" validate:"omitempty,oneof=gzip zstd none"`
	// Name is the bundle's base name (default: the archive's base name).
	Name string `yaml:"name,omitempty" json:"name,omitempty" template:""`
}
