package server

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/klauspost/compress/zstd"
	"github.com/rs/zerolog/log"
)

// ZstdMiddleware decompresses zstd request bodies and compresses responses
// for clients that accept zstd. Whitelisted routes pass through untouched.
func ZstdMiddleware(whitelistedRoutes []string) fiber.Handler {
	if whitelistedRoutes == nil {
		whitelistedRoutes = []string{"/health"}
		log.Debug().
			Any("default", whitelistedRoutes).
			Msg("Whitelisted routes not specified, using default whitelist")
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		// only fails on invalid options
		panic(fmt.Sprintf("zstd decoder: %v", err))
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(fmt.Sprintf("zstd encoder: %v", err))
	}

	return func(c *fiber.Ctx) error {
		if slices.Contains(whitelistedRoutes, c.Path()) {
			return c.Next()
		}

		// Handle request decompression
		if strings.EqualFold(c.Get(fiber.HeaderContentEncoding), "zstd") {
			body := c.Request().Body()
			if len(body) > 0 {
				decompressed, err := decoder.DecodeAll(body, nil)
				if err != nil {
					log.Err(err).Msg("Failed to decompress request")
					return c.Status(fiber.StatusBadRequest).JSON(
						createResponse(
							map[string]interface{}{},
							fmt.Errorf("failed to decompress zstd data: %w", err),
						))
				}

				c.Request().SetBody(decompressed)
				log.Debug().
					Int("compressed_size", len(body)).
					Int("decompressed_size", len(decompressed)).
					Msg("Request body decompressed")
			}
			c.Request().Header.Del(fiber.HeaderContentEncoding)
		}

		if err := c.Next(); err != nil {
			return err
		}

		// Handle response compression
		if !strings.Contains(strings.ToLower(c.Get(fiber.HeaderAcceptEncoding)), "zstd") {
			return nil
		}
		responseBody := c.Response().Body()
		if len(responseBody) == 0 {
			return nil
		}

		compressed := encoder.EncodeAll(responseBody, nil)
		c.Response().SetBody(compressed)
		c.Set(fiber.HeaderContentEncoding, "zstd")
		c.Set(fiber.HeaderContentLength, fmt.Sprintf("%d", len(compressed)))

		log.Debug().
			Int("original_size", len(responseBody)).
			Int("compressed_size", len(compressed)).
			Msg("Response body compressed")
		return nil
	}
}
