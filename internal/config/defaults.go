package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.CatalogPath == "" {
		cfg.Storage.CatalogPath = "/usr/local/var/medfinder/data/medicines.json"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/medfinder/data/indices/medical_book.index"
	}
	if cfg.Storage.MetadataPath == "" {
		cfg.Storage.MetadataPath = "/usr/local/var/medfinder/data/indices/medical_book_meta.json"
	}
	if cfg.Storage.SuggestIndexPath == "" {
		cfg.Storage.SuggestIndexPath = "/usr/local/var/medfinder/data/indices/suggest.bleve"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:8081/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "nomic-embed-text-v1.5"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}
	if cfg.Embedding.BatchSize == 0 {
		cfg.Embedding.BatchSize = 32
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.TimeoutSeconds == 0 {
		cfg.Embedding.TimeoutSeconds = 30
	}
	if cfg.LLM.APIKeyEnv == "" {
		cfg.LLM.APIKeyEnv = "LLM_API_KEY"
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "gpt-4o-mini"
	}
	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.2
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 1500
	}
	if cfg.LLM.TimeoutSeconds == 0 {
		cfg.LLM.TimeoutSeconds = 30
	}
	if cfg.Pipeline.TopK == 0 {
		cfg.Pipeline.TopK = 5
	}
	if cfg.Pipeline.MinScore == 0 {
		cfg.Pipeline.MinScore = 0.5
	}
	if cfg.Pipeline.HighConfidence == 0 {
		cfg.Pipeline.HighConfidence = 0.7
	}
	if cfg.Pipeline.RegexConfidence == 0 {
		cfg.Pipeline.RegexConfidence = 0.8
	}
	if cfg.Pipeline.MaxResults == 0 {
		cfg.Pipeline.MaxResults = 5
	}
	if cfg.Pipeline.MaxContextChunks == 0 {
		cfg.Pipeline.MaxContextChunks = 2
	}
	if cfg.Pipeline.ChunkCharBudget == 0 {
		cfg.Pipeline.ChunkCharBudget = 250
	}
	if cfg.Pipeline.MatchLimit == 0 {
		cfg.Pipeline.MatchLimit = 10
	}
	if cfg.Availability.TTLHours == 0 {
		cfg.Availability.TTLHours = 2
	}
	if cfg.Availability.TimeoutSeconds == 0 {
		cfg.Availability.TimeoutSeconds = 10
	}
	if cfg.Interactions.TimeoutSeconds == 0 {
		cfg.Interactions.TimeoutSeconds = 10
	}
}
