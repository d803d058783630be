// Package analysis provides offline analysis tools for opinion models.
//
// The package covers three experiment families:
//
//   - [HysteresisLoop]: mean opinion along an external-field ramp, up and
//     back down, exposing the memory effect of the conformity coupling
//   - [AvalancheSizes]: flip counts triggered by small field increments
//     from an equilibrated population
//   - [ZSweep]: long-run follower accuracy across informed fractions,
//     paired with the mean-field fixed points of the same parameters
package analysis
