// Ractso - Post Recommendation Service
// Copyright 2026 Ractso contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/excel-azmin/ractso

// Package config loads Ractso configuration with koanf v2.
//
// Sources are layered, later layers overriding earlier ones:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: CONFIG_PATH, ./config.yaml, /etc/ractso/config.yaml
//  3. Environment variables, mapped explicitly by envTransformFunc
//
// Only environment variables present in the mapping table are read, so
// unrelated variables never leak into the configuration. Comma-separated
// values (CORS_ORIGINS) are split into slices after loading.
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return fmt.Errorf("load config: %w", err)
//	}
//	db, err := database.Open(&cfg.Database)
package config
