// Package config loads the YAML description of a stimulus batch.
//
// A config file has a general section, whose geometry values act as defaults,
// and a list of stimuli that may override any of them:
//
//	general:
//	  output_dir: ./output
//	  num_target_present: 4800   # split evenly across set sizes
//	  num_target_absent: [1200, 1200, 1200, 1200]
//	  set_sizes: [1, 2, 4, 8]
//	  grid_size: [5, 5]
//	stimuli:
//	  - name: RVvGV
//	    flavor: rectangle
//	  - name: 2_v_5
//	    flavor: number
//	    free_field: true
//	    min_center_dist: 40
//
// Values from a .env file and SEARCHSTIMS_* environment variables override the
// file. Validate checks everything up front so that a batch never starts on a
// configuration it cannot finish.
package config
