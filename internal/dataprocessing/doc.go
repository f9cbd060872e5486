// Package dataprocessing implements the ingestion and aggregation pipeline:
// reading uploaded CSV/XLSX streams, normalizing the schema, coercing field
// types, and computing the five aggregate views that feed the dashboard
// charts.
//
// The pipeline is request-scoped. A Dataset is built fresh per upload, held
// for the duration of one render cycle, and discarded; nothing here keeps
// state across requests.
package dataprocessing
