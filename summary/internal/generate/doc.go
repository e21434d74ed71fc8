// Package generate orchestrates one summary run.
//
// Order of operations:
//
//  1. aggregate every site through the driver
//  2. render the README status table, template customisation and live status
//  3. update repository metadata (outside the template repository)
//  4. git pull, write README.md and .gitattributes, commit
//  5. patch workflow files
//  6. write summary.json, badge endpoints and summary.prom, commit and push
//  7. delete short-lived closed status issues
//
// GitHub steps are skipped when no client is configured; git steps are
// skipped when no repository is configured. Every run logs under a fresh
// run_id.
package generate
