package cache

import "fmt"

func PipelineStatusKey(pipelineID string) string {
	return fmt.Sprintf("pipeline:%s", pipelineID)
}

func RateLimitKey(clientKey string) string {
	return fmt.Sprintf("ratelimit:%s", clientKey)
}
