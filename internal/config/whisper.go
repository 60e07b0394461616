package config

// DefaultWhisperModel is the model downloaded when none is requested
const DefaultWhisperModel = "turbo"

// WhisperModel is one entry of the supported model catalogue
type WhisperModel struct {
	Name string
	// CacheFile is the checkpoint name openai-whisper stores in its download root
	CacheFile string
}

var whisperModels = []WhisperModel{
	{Name: "tiny", CacheFile: "tiny.pt"},
	{Name: "base", CacheFile: "base.pt"},
	{Name: "small", CacheFile: "small.pt"},
	{Name: "medium", CacheFile: "medium.pt"},
	{Name: "large", CacheFile: "large.pt"},
	{Name: "large-v2", CacheFile: "large-v2.pt"},
	{Name: "large-v3", CacheFile: "large-v3.pt"},
	{Name: "turbo", CacheFile: "large-v3-turbo.pt"},
}

// WhisperModelNames lists the accepted --whisper-model values in catalogue order
func WhisperModelNames() []string {
	names := make([]string, 0, len(whisperModels))
	for _, m := range whisperModels {
		names = append(names, m.Name)
	}
	return names
}

// LookupWhisperModel returns the catalogue entry for name
func LookupWhisperModel(name string) (WhisperModel, bool) {
	for _, m := range whisperModels {
		if m.Name == name {
			return m, true
		}
	}
	return WhisperModel{}, false
}

func IsWhisperModel(name string) bool {
	_, ok := LookupWhisperModel(name)
	return ok
}
