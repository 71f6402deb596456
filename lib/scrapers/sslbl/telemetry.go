package sslbl

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("sslbl.lib.scrapers.sslbl")
var meter = otel.Meter("sslbl.lib.scrapers.sslbl")

var pagesFetched, _ = meter.Int64Counter("sslbl.pages.fetched")
var pagesMissed, _ = meter.Int64Counter("sslbl.pages.missed")
var recordsParsed, _ = meter.Int64Counter("sslbl.records.parsed")
