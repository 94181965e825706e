// Package domain holds the User and Task entities, the calendar Date type and
// the validation rules that apply no matter how an entity is stored or sent.
package domain
