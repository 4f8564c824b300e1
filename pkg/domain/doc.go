// Package domain defines the entities served by the demo backend.
//
// Users and items are plain records with an integer id assigned by the
// store. Create requests carry optional fields; defaults are applied by
// ToUser/ToItem.
package domain
