// Package pkg provides the core libraries for the vizpipe dataset pipelines.
//
// # Overview
//
// Vizpipe transforms raw datasets into the artifacts an interactive
// visualization frontend consumes. The pkg directory is organized by
// pipeline stage:
//
//  1. [pajek], [hierarchy], [geo] - dataset readers (graph, tree, map)
//  2. [graph], [analytics] - the in-memory graph model and its metrics
//  3. [export] - artifact serializers (force-graph JSON, nested JSON, GeoJSON, DOT)
//  4. [pipeline] - orchestration with content-addressed caching
//  5. [cache], [config], [errors], [buildinfo] - supporting infrastructure
//
// # Architecture
//
// The typical data flow through vizpipe:
//
//	Pajek .net file ──→ graph ──→ analytics ──→ export ──→ network.json / network.dot
//	nodes.csv + links.csv ──→ hierarchy ──→ subtree ──→ export ──→ tree.json
//	worldcities.csv ──→ geo ──→ filter ──→ export ──→ cities.json
//
// The pipeline package ties the stages together and caches each artifact
// by a hash of its input content and processing options.
package pkg
