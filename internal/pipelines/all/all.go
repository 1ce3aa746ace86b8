// internal/pipelines/all/all.go

// Package all registra todas las implementaciones de pipeline en registry.Global().
package all

import (
	_ "ingestrouter/internal/pipelines/buoy"
	_ "ingestrouter/internal/pipelines/imu"
	_ "ingestrouter/internal/pipelines/lidar"
	_ "ingestrouter/internal/pipelines/waves"
)
