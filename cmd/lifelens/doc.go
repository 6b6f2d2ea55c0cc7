// Command lifelens analyzes photos from the terminal: repair diagnoses for
// broken things, nutrition estimates for meals, the meal tracker, the impact
// dashboard and the scripted demo. It shares the record store with lifelensd.
package main
