/*
Package uncertainty implements measured values with uncertainty, statistics
over repeated measurements and GUM uncertainty budgets.

A MeasuredValue pairs a quantity with its standard or expanded uncertainty
and the confidence level that uncertainty was stated at. Arithmetic on
measured values propagates uncertainty assuming independent errors.

A Series accumulates repeated readings of one kind of quantity and derives
the mean, Bessel-corrected standard deviation, standard error, confidence
intervals and outliers.

A Budget combines named Type A and Type B components into a combined and
expanded uncertainty with per-source percentage contributions.

Series and Budget are safe for concurrent use. MeasuredValue is immutable.
*/
package uncertainty
