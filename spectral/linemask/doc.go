// Package linemask defines rest-frame wavelength exclusion windows.
//
// A Set holds intervals around spectral features that should not
// constrain a continuum or template fit, for example strong emission
// lines or sky residuals. MaskObserved projects the windows to the
// observed frame of a redshifted spectrum.
package linemask
