package logger

// LogRunStart logs the beginning of a harvest run
func LogRunStart(feedURL string, headless bool) {
	GetLogger().InfoWithFields("harvest run starting", map[string]interface{}{
		"feed_url": feedURL,
		"headless": headless,
	})
}

// LogRunComplete logs a finished harvest run
func LogRunComplete(runID, owner, artifact string, urls int) {
	GetLogger().InfoWithFields("harvest run complete", map[string]interface{}{
		"run_id":   runID,
		"owner":    owner,
		"artifact": artifact,
		"urls":     urls,
	})
}
