package types

// Stage identifies a step of the release pipeline
type Stage string

const (
	StageReadSourceMap    Stage = "read_source_map"
	StageParseSourceMap   Stage = "parse_source_map"
	StageCreateRelease    Stage = "create_release"
	StageUploadSources    Stage = "upload_sources"
	StageUploadSourceMaps Stage = "upload_source_maps"
)

// Description returns a human readable failure message for the stage
func (s Stage) Description() string {
	switch s {
	case StageReadSourceMap:
		return "failed to read source map"
	case StageParseSourceMap:
		return "failed to parse source map"
	case StageCreateRelease:
		return "failed to create release"
	case StageUploadSources:
		return "failed to upload sources"
	case StageUploadSourceMaps:
		return "failed to upload source maps"
	default:
		return "failed at stage " + string(s)
	}
}
