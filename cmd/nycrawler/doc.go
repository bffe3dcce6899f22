// Command nycrawler discovers Vienna New Year's Concert programmes on the
// Wiener Philharmoniker catalog and archives them locally.
package main
