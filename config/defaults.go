package config

// Defaults shared by DefaultUserConfig and the generated template.
const (
	DefaultTimeoutSeconds = 120
	DefaultSessionID      = "wildwise-chat"
	DefaultScholarURL     = "https://api.semanticscholar.org/graph/v1"
	DefaultScholarLimit   = 3
	DefaultPixabayURL     = "https://pixabay.com/api/"
	DefaultFallbackImage  = "https://cdn.pixabay.com/photo/2017/06/06/22/08/bird-2376974_1280.jpg"
)

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/wildwise",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Backend: BackendConfig{
			Type:           "wildwise",
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Speech: SpeechConfig{
			Language: "en-US",
		},
		Storage: StorageConfig{
			Backend:   StorageJSON,
			SessionID: DefaultSessionID,
		},
		Research: ResearchConfig{
			Enabled:       true,
			ScholarURL:    DefaultScholarURL,
			Limit:         DefaultScholarLimit,
			PixabayURL:    DefaultPixabayURL,
			FallbackImage: DefaultFallbackImage,
		},
		Security: SecurityConfig{
			CredentialStorage: string(SecurityPlainText),
			SSHKeyPath:        "~/.ssh/id_ed25519",
		},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# WildWise System Configuration
# Location: ~/.config/wildwise/settings.toml
# This file uses TOML format: https://toml.io

# Directory where the conversation, credentials and user config are stored
data_directory = "~/.local/share/wildwise"
`
}

func GenerateUserConfigTemplate() string {
	return `# WildWise User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[backend]
# Where answers come from:
#   "wildwise"  - the WildWise answering service (POST <url>/api/chat)
#   "ollama"    - a local Ollama server
#   "openai"    - OpenAI chat completions (key in credentials)
#   "anthropic" - Anthropic messages API (key in credentials)
type = "wildwise"

# Backend address (empty = backend default: http://localhost:5000 for
# wildwise, http://localhost:11434 for ollama, the public API otherwise)
url = ""

# Model name for LLM backends (empty = backend default)
model = ""

# System prompt for LLM backends (empty = built-in wildlife prompt)
system_prompt = ""

# Seconds to wait for an answer before the turn fails (0 = wait forever)
request_timeout_seconds = 120

[speech]
# External recognizer that prints transcripts on stdout, one alternative
# per line. "{lang}" in args is replaced with the language below.
# Leave command empty to disable voice input.
command = ""
args = []
language = "en-US"

[storage]
# "json" keeps <data_directory>/sessions/<session_id>.json
# "sqlite" keeps <data_directory>/wildwise.db
backend = "json"
session_id = "wildwise-chat"

[research]
# Attach Semantic Scholar papers and a Pixabay image to wildlife answers
# from LLM backends (the WildWise service does this itself).
enabled = true
scholar_url = "https://api.semanticscholar.org/graph/v1"
limit = 3
pixabay_url = "https://pixabay.com/api/"
fallback_image = "https://cdn.pixabay.com/photo/2017/06/06/22/08/bird-2376974_1280.jpg"

[security]
# "plaintext" stores API keys in credentials.toml (0600)
# "ssh_key" encrypts them into credentials.enc with a key derived from ssh_key_path
credentials = "plaintext"
ssh_key_path = "~/.ssh/id_ed25519"
`
}
