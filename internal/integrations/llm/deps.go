package llm

import (
	"unitconv/internal/config"
	"unitconv/internal/domain"
	"unitconv/internal/httpx"
)

type Config = config.Config
type ConversionRequest = domain.ConversionRequest

var externalHTTPClient = httpx.ExternalHTTPClient()
