// Package pkg provides the core libraries for BannerForge batch rendering.
//
// # Overview
//
// BannerForge turns one visual template plus a tabular data file into a
// batch of rendered creative images, one per row. The pkg directory is
// organized into three main areas:
//
//  1. Template model (template, mapping, rows, resolve)
//  2. Rendering (layout, raster, pipeline, cache)
//  3. Orchestration (batch, job)
//
// # Architecture
//
// The typical data flow through BannerForge:
//
//	Template document + CSV rows
//	         ↓
//	mapping.AutoDetect / mapping.Parse   (columns → fields)
//	         ↓
//	resolve.Resolve                      (row + template → Record)
//	         ↓
//	layout.Engine.Compute                (Record → draw ops)
//	         ↓
//	raster.Backend.Render + Encode       (draw ops → image bytes)
//	         ↓
//	batch.Orchestrator                   (worker pool, job tracking,
//	                                      manifest, archive)
//
// The pipeline package binds the middle stages into a per-row Runner so
// previews and full renders share identical measurement and output.
package pkg
