// Package stats holds the statistical primitives behind categorical
// imputation: contingency tables, the chi-square test of independence and
// mode aggregation.
//
// The imputer only depends on the narrow IndependenceTest and Moder
// interfaces, so tie-breaking and exclusion rules can be exercised with fakes.
package stats
