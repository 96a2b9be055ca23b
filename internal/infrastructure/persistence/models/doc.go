// Package models contains the GORM models for the preference store.
// Domain types stay free of ORM tags; the repositories in persistence map
// between the two.
package models
