// Package domain defines the core domain models for myke.
//
// Domain models are plain values without IO dependencies. This package contains:
//
//   - Task: a named, invocable unit of work with its namespace path
//   - Param: a declared task parameter and its parsed Args
//   - Script: the normalized result of a shell task and its ShellOptions
//   - Naming: conversion of identifiers into command strings
//   - Errors: coded domain errors and ProcessError
package domain
