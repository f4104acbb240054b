package model

// Package model defines domain data structures used across the app: catalogue
// entities (songs, releases, artists), search results, download items and
// status enums. Structures are designed for direct binding in the UI and
// explicit state transitions.
